// package lyrics pulls lyrics text out of song pages and isolates the verses
// credited to one artist.
//
// Song pages mark each performer's part with a bracketed header such as
// "[Verse 2: Some Rapper]". Pages without any credited header are treated as
// solo songs and kept whole.
package lyrics

// package catalog turns a free-text artist query into a canonical artist and
// walks that artist's song list page by page.
//
// Discovery is lazy: [Catalog.Songs] returns an [iter.Seq2] that fetches the
// next page only when the consumer asks for more songs, so a run bounded by a
// song count stops paging as soon as it has enough.
package catalog

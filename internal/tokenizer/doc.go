// package tokenizer encodes lyrics into model token ids and runs the
// encoder behind an isolation boundary.
//
// Two vocabularies are supported: BERT-style WordPiece read from a vocab.txt
// file, and the tiktoken BPE encodings. Both share the same output shaping
// (truncation, padding and attention mask).
//
// A [Runner] decides where encoding happens. [ProcessRunner] re-executes the
// lyrx binary as "lyrx tokenize-worker" for every request so a crash in the
// encoder cannot take the ingest run down with it; [GoroutineRunner] keeps the
// work in-process and only guards against panics and hangs.
package tokenizer

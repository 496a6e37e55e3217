// Package crawler drives a crawl of one community's gallery feed.
//
// Run walks the feed one page at a time. Each page moves through these states:
//
//	FetchingPage -> ProcessingImages -> Paced -> FetchingPage ... -> Done
//
// Images are handled in feed order with a fixed delay after every image
// that touched the network. A transport failure anywhere in a page drops
// the connections, waits the retry cooldown and restarts the page; images
// stored by the failed attempt are skipped by the record store check.
// Once MaxPageAttempts is used up the run fails with a retry_exhausted
// error. A 404 or an empty gallery is the only normal way for a run to end.
package crawler

// Package downloader fetches one image at a time from the image host and
// hands the bytes to storage. It consults the record store first so that
// images already recorded cost no network traffic.
package downloader

package crawler

import (
	"imgurr/internal/downloader"
	"imgurr/pkg/imgur"
	"imgurr/pkg/store"
)

// newRecord combines the feed's description of an image with what the
// download produced
func newRecord(img *imgur.Image, saved downloader.SavedImage) *store.ImageRecord {
	return &store.ImageRecord{
		Hash:          img.Hash,
		Title:         img.Title.NullString(),
		SourceURI:     saved.DirectURI,
		LocalFilename: saved.LocalFilename,
		ETag:          saved.ETag,
		Datetime:      img.Datetime.NullString(),
		Mimetype:      img.Mimetype.NullString(),
		Ext:           img.Ext,
		Width:         img.Width.NullInt64(),
		Height:        img.Height.NullInt64(),
		Size:          img.Size.NullInt64(),
		Ups:           img.Ups.NullInt64(),
		Downs:         img.Downs.NullInt64(),
		Points:        img.Points.NullInt64(),
		Permalink:     img.Permalink.NullString(),
		Subreddit:     img.Subreddit.NullString(),
		NSFW:          img.NSFW.NullString(),
		Created:       img.Created.NullString(),
		Score:         img.Score.NullString(),
		Author:        img.Author.NullString(),
	}
}

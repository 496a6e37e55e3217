package imgur

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// GalleryPage is the body of a feed page. Gallery is nil when the key is
// missing or null, which is not the same as an empty page.
type GalleryPage struct {
	Gallery *[]Image `json:"gallery"`
}

// Image is one gallery entry as reported by the feed
type Image struct {
	Hash      string     `json:"hash"`
	Title     FlexString `json:"title"`
	Datetime  FlexString `json:"datetime"`
	Mimetype  FlexString `json:"mimetype"`
	Ext       string     `json:"ext"`
	Width     FlexInt    `json:"width"`
	Height    FlexInt    `json:"height"`
	Size      FlexInt    `json:"size"`
	Ups       FlexInt    `json:"ups"`
	Downs     FlexInt    `json:"downs"`
	Points    FlexInt    `json:"points"`
	Permalink FlexString `json:"permalink"`
	Subreddit FlexString `json:"subreddit"`
	NSFW      FlexString `json:"nsfw"`
	Created   FlexString `json:"created"`
	Score     FlexString `json:"score"`
	Author    FlexString `json:"author"`
}

// FlexString accepts a JSON string, number, boolean or null. Booleans
// become "1" or "0" and numbers keep their literal text.
type FlexString struct {
	String string
	Valid  bool
}

// NewFlexString returns a non-null FlexString
func NewFlexString(s string) FlexString {
	return FlexString{String: s, Valid: true}
}

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = FlexString{}
	case bytes.Equal(data, []byte("true")):
		*f = NewFlexString("1")
	case bytes.Equal(data, []byte("false")):
		*f = NewFlexString("0")
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = NewFlexString(s)
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = NewFlexString(n.String())
	default:
		return fmt.Errorf("cannot use %s as a string field", data)
	}
	return nil
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.String)
}

// NullString converts to the database/sql representation
func (f FlexString) NullString() sql.NullString {
	return sql.NullString{String: f.String, Valid: f.Valid}
}

// FlexInt accepts a JSON number, a numeric string or null
type FlexInt struct {
	Int64 int64
	Valid bool
}

// NewFlexInt returns a non-null FlexInt
func NewFlexInt(n int64) FlexInt {
	return FlexInt{Int64: n, Valid: true}
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexInt{}
		return nil
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		if text == "" {
			*f = FlexInt{}
			return nil
		}
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		*f = NewFlexInt(n)
		return nil
	}
	if x, err := strconv.ParseFloat(text, 64); err == nil {
		// 2^63 itself is out of range; -2^63 is not
		if math.IsNaN(x) || x >= math.MaxInt64 || x < math.MinInt64 {
			return fmt.Errorf("%s is out of range for an integer field", data)
		}
		*f = NewFlexInt(int64(x))
		return nil
	}
	return fmt.Errorf("cannot use %s as an integer field", data)
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Int64, 10)), nil
}

// NullInt64 converts to the database/sql representation
func (f FlexInt) NullInt64() sql.NullInt64 {
	return sql.NullInt64{Int64: f.Int64, Valid: f.Valid}
}

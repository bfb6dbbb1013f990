package storage

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// URLConfig controls how view and preview URLs are produced.
// With PublicBaseURL set, URLs are permanent links under that base;
// otherwise presigned GET URLs valid for Expiry are issued.
type URLConfig struct {
	PublicBaseURL string
	Expiry        time.Duration
}

func previewParams(width, height int) url.Values {
	params := make(url.Values)
	if width > 0 {
		params.Set("width", strconv.Itoa(width))
	}
	if height > 0 {
		params.Set("height", strconv.Itoa(height))
	}
	return params
}

func publicObjectURL(base, key string, params url.Values) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	u := strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

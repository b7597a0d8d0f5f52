package models

// CachedSession is the last identity that logged in successfully while the
// server was reachable. It lets the terminal keep showing who is signed in
// during an outage. It holds no secrets and grants nothing by itself.
type CachedSession struct {
	Username    string `json:"username"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	CapturedAt  int64  `json:"capturedAt"`
}

// CacheEntry is an opaque key/value pair. Entries never expire.
type CacheEntry struct {
	Key       string
	Value     []byte
	UpdatedAt int64
}

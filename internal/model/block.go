package model

// Block maps an indexed block number to its timestamp bucket.
type Block struct {
	Number    uint64 `json:"number"`
	Timestamp int64  `json:"timestamp"`
}

package models

// Transfer is an incoming transaction observed on the external ledger.
// Read-only: the chain owns it, we only match against it.
type Transfer struct {
	Sender    string `json:"sender"`
	ValueNano int64  `json:"value_nano"`
	Hash      string `json:"hash"`
}

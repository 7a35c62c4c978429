// internal/storage/models/wallet.go
package models

// Wallet is a user's custody keypair record. Private keys are stored
// encrypted; the *Ref fields hold ciphertext, never plaintext.
type Wallet struct {
	BaseModel
	UserID           string `json:"user_id"`
	SolPublicKey     string `json:"sol_public_key"`
	SolPrivateKeyRef string `json:"-"`
	XrpPublicKey     string `json:"xrp_public_key"`
	XrpPrivateKeyRef string `json:"-"`
}

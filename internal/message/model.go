package message

import (
	"time"

	"github.com/google/uuid"
)

// Message is an end-to-end encrypted payload between two users. The server
// stores ciphertext and IV only; it never sees plaintext.
type Message struct {
	ID               uuid.UUID `json:"messageId"`
	SenderID         uuid.UUID `json:"senderId"`
	RecipientID      uuid.UUID `json:"recipientId"`
	EncryptedContent string    `json:"encryptedContent"`
	IV               string    `json:"iv"`
	Read             bool      `json:"read"`
	CreatedAt        time.Time `json:"createdAt"`
}

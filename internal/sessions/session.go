package sessions

import (
	"time"

	"github.com/jobhuntboard/jobhuntboard/internal/identity"
)

// Session is a persistent refresh session. Display fields are carried along so
// a refresh can restore the signed-in identity without a user lookup.
type Session struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	RefreshToken string    `bson:"refreshToken" json:"refreshToken"`
	Sub          string    `bson:"sub" json:"sub"`
	Name         string    `bson:"name,omitempty" json:"name,omitempty"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	Picture      string    `bson:"picture,omitempty" json:"picture,omitempty"`
	ExpiresAt    time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// Identity rebuilds the identity this session was created for.
func (s *Session) Identity() *identity.Identity {
	return &identity.Identity{Sub: s.Sub, Name: s.Name, Email: s.Email, Picture: s.Picture}
}

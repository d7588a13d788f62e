package identity

import "sync"

// Identity is the authenticated user as the core sees it: a stable subject
// plus display fields for the header greeting. Nothing here participates in
// authorization logic.
type Identity struct {
	Sub     string `json:"sub"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// FromClaims extracts an Identity from an OIDC claims map. Returns nil when
// the sub claim is missing.
func FromClaims(claims map[string]any) *Identity {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	picture, _ := claims["picture"].(string)
	return &Identity{Sub: sub, Name: name, Email: email, Picture: picture}
}

// DisplayName is the greeting text: name when present, else email.
func (id *Identity) DisplayName() string {
	if id.Name != "" {
		return id.Name
	}
	return id.Email
}

// Provider holds the current identity (or none) and fans out changes to
// subscribers, mirroring an auth-state-changed stream. Sign-in and sign-out
// are triggered by the auth handlers after the interactive exchange settles.
type Provider struct {
	mu      sync.Mutex
	current *Identity
	subs    map[int]func(*Identity)
	nextSub int
}

func NewProvider() *Provider {
	return &Provider{subs: make(map[int]func(*Identity))}
}

// Current returns the present identity or nil.
func (p *Provider) Current() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe registers fn for identity changes and immediately delivers the
// current value. The returned cancel function removes the subscription.
func (p *Provider) Subscribe(fn func(*Identity)) (cancel func()) {
	p.mu.Lock()
	key := p.nextSub
	p.nextSub++
	p.subs[key] = fn
	current := p.current
	p.mu.Unlock()

	fn(current)
	return func() {
		p.mu.Lock()
		delete(p.subs, key)
		p.mu.Unlock()
	}
}

// SignIn installs id as the current identity and notifies subscribers.
func (p *Provider) SignIn(id *Identity) {
	p.set(id)
}

// SignOut clears the current identity and notifies subscribers.
func (p *Provider) SignOut() {
	p.set(nil)
}

func (p *Provider) set(id *Identity) {
	p.mu.Lock()
	p.current = id
	fns := make([]func(*Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

package internal

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CustomDomain *string   `json:"customDomain"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ShortLink struct {
	ID           string     `json:"id"`
	OriginalURL  string     `json:"originalUrl"`
	ShortCode    string     `json:"shortCode"`
	CustomDomain *string    `json:"customDomain"`
	UserID       string     `json:"userId"`
	Clicks       int64      `json:"clicks"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Expired reports whether the link's expiry lies strictly before now.
func (l *ShortLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

type LinkStats struct {
	TotalLinks    int64       `json:"totalLinks"`
	TotalClicks   int64       `json:"totalClicks"`
	CreatedToday  int64       `json:"createdToday"`
	AverageClicks int64       `json:"averageClicks"`
	TopLinks      []ShortLink `json:"topLinks"`
}

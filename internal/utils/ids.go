package utils

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// NewAttemptID: сортируемый по времени id цикла попыток (для логов)
func NewAttemptID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

package services

import (
	"fmt"
	"time"

	"splitkeeper/pkg/utils"
)

// GenerateReference builds a ledger reference like "stl-20260901120000-a3f9c1".
func GenerateReference(prefix string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102150405"), utils.GenerateRandomString(6))
}

package badger

import (
	"fmt"

	"github.com/poiesic/faqbot/core"
)

// Key prefixes for different data types
const (
	faqRecordPrefix  = "faqrec"
	verifyCodePrefix = "vercode"
)

// makeFaqRecordKey generates a key for a FAQ record by ID.
func makeFaqRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", faqRecordPrefix, id))
}

// makeVerifyCodeKey generates a key for a verification code entry.
func makeVerifyCodeKey(key string) []byte {
	return []byte(verifyCodePrefix + ":" + key)
}

package invite

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samborkent/uuidv7"
)

// NewSecret returns the per-arena secret embedded in invite codes.
func NewSecret() string {
	return uuidv7.New().String()
}

// GenerateCode packs an arena id and its secret into an opaque invite code.
func GenerateCode(arenaID, secret string) string {
	code := fmt.Sprintf("%s|%s", arenaID, secret)
	return base64.StdEncoding.EncodeToString([]byte(code))
}

// Decode unpacks an invite code into the arena id and secret it was generated
// for. The caller still has to check the secret against the arena document.
func Decode(code string) (arenaID, secret string, err error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return "", "", err
	}
	res := strings.Split(string(decodedBytes), "|")
	if len(res) != 2 {
		return "", "", fmt.Errorf("not correct format")
	}
	return res[0], res[1], nil
}

package repositories

import (
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// fieldCipher seals individual text columns. A nil key stores plaintext.
type fieldCipher struct {
	key []byte
}

func (c fieldCipher) sealAll(values ...string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		if c.key == nil || v == "" {
			out[i] = v
			continue
		}
		enc, err := utils.Encrypt(c.key, v)
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

func (c fieldCipher) openAll(fields ...*string) error {
	if c.key == nil {
		return nil
	}
	for _, f := range fields {
		if *f == "" {
			continue
		}
		dec, err := utils.Decrypt(c.key, *f)
		if err != nil {
			return err
		}
		*f = dec
	}
	return nil
}

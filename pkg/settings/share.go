package settings

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/matzehuels/easel/pkg/errors"
)

// TokenVersion is the leading byte of every share token.
const TokenVersion byte = 2

const (
	checksumSize = 8
	idSize       = 16
)

// SharedPreset is a named, shareable snapshot of settings.
type SharedPreset struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Settings  Persistable `json:"settings"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewSharedPreset stamps p with a fresh ID and the current time.
func NewSharedPreset(name string, p Persistable) (SharedPreset, error) {
	name = strings.TrimSpace(name)
	if err := errors.ValidatePresetName(name); err != nil {
		return SharedPreset{}, err
	}
	if err := Validate(p); err != nil {
		return SharedPreset{}, err
	}
	return SharedPreset{
		ID:        uuid.New(),
		Name:      name,
		Settings:  p,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}, nil
}

// sharePayload is the JSON carried inside a token after the raw ID bytes.
// Settings hold only the keys that differ from Defaults.
type sharePayload struct {
	Name      string          `json:"n"`
	CreatedAt int64           `json:"t,omitempty"`
	Settings  json.RawMessage `json:"s"`
}

// EncodeShare renders sp as a URL-safe token.
func EncodeShare(sp SharedPreset) (string, error) {
	if err := errors.ValidatePresetName(sp.Name); err != nil {
		return "", err
	}
	settings, err := compactSettings(sp.Settings)
	if err != nil {
		return "", err
	}
	payload := sharePayload{Name: sp.Name, Settings: settings}
	if !sp.CreatedAt.IsZero() {
		payload.CreatedAt = sp.CreatedAt.Unix()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode share")
	}

	buf := make([]byte, 0, 1+idSize+len(body)+checksumSize)
	buf = append(buf, TokenVersion)
	buf = append(buf, sp.ID[:]...)
	buf = append(buf, body...)
	buf = append(buf, checksum(buf)...)

	token := base64.RawURLEncoding.EncodeToString(buf)
	if len(token) > errors.MaxTokenLength {
		return "", errors.New(errors.ErrCodeInvalidToken, "share token too long (%d characters)", len(token))
	}
	return token, nil
}

// compactSettings encodes p as a settings document without the keys whose
// values match Defaults. Decode fills them back in.
func compactSettings(p Persistable) (json.RawMessage, error) {
	full, err := Encode(p)
	if err != nil {
		return nil, err
	}
	base, err := Encode(Defaults())
	if err != nil {
		return nil, err
	}

	var doc, defaults map[string]json.RawMessage
	if err := json.Unmarshal(full, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compact settings")
	}
	if err := json.Unmarshal(base, &defaults); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compact settings")
	}
	for k, v := range doc {
		if k != "version" && bytes.Equal(v, defaults[k]) {
			delete(doc, k)
		}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compact settings")
	}
	return out, nil
}

// DecodeShare parses a token produced by EncodeShare. Any damage to the
// token yields an INVALID_TOKEN error; nothing is partially decoded.
func DecodeShare(token string) (SharedPreset, error) {
	token = strings.TrimSpace(token)
	if err := errors.ValidateToken(token); err != nil {
		return SharedPreset{}, err
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return SharedPreset{}, errors.Wrap(errors.ErrCodeInvalidToken, err, "share token is not valid base64")
	}
	if len(raw) < 1+idSize+checksumSize+2 {
		return SharedPreset{}, errors.New(errors.ErrCodeInvalidToken, "share token is truncated")
	}

	head, sum := raw[:len(raw)-checksumSize], raw[len(raw)-checksumSize:]
	if subtle.ConstantTimeCompare(checksum(head), sum) != 1 {
		return SharedPreset{}, errors.New(errors.ErrCodeInvalidToken, "share token checksum mismatch")
	}
	if head[0] != TokenVersion {
		return SharedPreset{}, errors.Wrap(errors.ErrCodeInvalidToken,
			errors.New(errors.ErrCodeUnsupportedVersion, "token version %d", head[0]), "share token version not supported")
	}

	var id uuid.UUID
	copy(id[:], head[1:1+idSize])

	var payload sharePayload
	dec := json.NewDecoder(bytes.NewReader(head[1+idSize:]))
	if err := dec.Decode(&payload); err != nil {
		return SharedPreset{}, errors.Wrap(errors.ErrCodeInvalidToken, err, "share token payload is malformed")
	}
	settings, err := Decode(payload.Settings)
	if err != nil {
		return SharedPreset{}, errors.Wrap(errors.ErrCodeInvalidToken, err, "share token settings are invalid")
	}
	if err := errors.ValidatePresetName(payload.Name); err != nil {
		return SharedPreset{}, errors.Wrap(errors.ErrCodeInvalidToken, err, "share token name is invalid")
	}

	sp := SharedPreset{ID: id, Name: payload.Name, Settings: settings}
	if payload.CreatedAt != 0 {
		sp.CreatedAt = time.Unix(payload.CreatedAt, 0).UTC()
	}
	return sp, nil
}

func checksum(b []byte) []byte {
	h, _ := blake2b.New(checksumSize, nil)
	h.Write(b)
	return h.Sum(nil)
}

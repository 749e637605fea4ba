// Package container implements the on-disk codeplug file format: a
// versioned, optionally password-encrypted, authenticated serialization of
// a Codeplug. Version 2 is the only format ever written; version 1
// (unencrypted-only) is read for backward compatibility.
package container

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"github.com/opencps/mocodeplug/internal/radio"
	"github.com/opencps/mocodeplug/internal/radioerr"
	"github.com/opencps/mocodeplug/pkg/codeplug"
)

const (
	magic          = "CPLG"
	currentVersion = 2
	flagEncrypted  = 1 << 0

	pbkdf2Iterations = 100_000
	keyLen           = 32
	saltLen          = 16
	nonceLen         = 12

	// Version 1 never supported AEAD; Deserialize treats an
	// encrypted-flagged v1 file as UnsupportedVersion rather than
	// attempting legacy decryption.
)

// Serialize writes cp to the v2 container format. If password is non-empty,
// the body is sealed with AES-256-GCM under a PBKDF2-HMAC-SHA-256 key, with
// a fresh random salt and nonce on every call.
func Serialize(cp *codeplug.Codeplug, password string) ([]byte, error) {
	metaJSON, err := json.Marshal(cp.Metadata())
	if err != nil {
		return nil, fmt.Errorf("container: marshal metadata: %w", err)
	}

	body := encodeBody(cp.ModelID(), cp.Raw())

	flags := uint16(0)
	if password != "" {
		flags |= flagEncrypted
	}

	header := make([]byte, 0, 4+2+2+4+len(metaJSON))
	header = append(header, []byte(magic)...)
	header = appendU16LE(header, currentVersion)
	header = appendU16LE(header, flags)
	header = appendU32LE(header, uint32(len(metaJSON)))
	header = append(header, metaJSON...)

	if password == "" {
		out := append(header, body...)
		return out, nil
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("container: generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("container: generate nonce: %w", err)
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	sealed := gcm.Seal(nil, nonce, body, header) // tag is appended to ciphertext

	out := make([]byte, 0, len(header)+len(salt)+len(nonce)+len(sealed))
	out = append(out, header...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// Deserialize reads a v1 or v2 container back into a Codeplug. password is
// required (and must match) when the container reports itself encrypted.
func Deserialize(data []byte, password string) (*codeplug.Codeplug, error) {
	if len(data) < 8 || string(data[0:4]) != magic {
		return nil, &radioerr.InvalidFormat{Msg: "bad magic"}
	}
	version := int(binary.LittleEndian.Uint16(data[4:6]))
	flags := binary.LittleEndian.Uint16(data[6:8])
	encrypted := flags&flagEncrypted != 0

	if version == 1 && encrypted {
		return nil, &radioerr.UnsupportedVersion{Version: version}
	}
	if version != 1 && version != 2 {
		return nil, &radioerr.UnsupportedVersion{Version: version}
	}

	cursor := 8
	if cursor+4 > len(data) {
		return nil, &radioerr.Corrupted{Msg: "truncated metadata length"}
	}
	metaLen := int(binary.LittleEndian.Uint32(data[cursor : cursor+4]))
	cursor += 4
	if cursor+metaLen > len(data) {
		return nil, &radioerr.Corrupted{Msg: "truncated metadata"}
	}
	metaJSON := data[cursor : cursor+metaLen]
	cursor += metaLen

	headerEnd := cursor
	header := data[0:headerEnd]

	var meta codeplug.Metadata
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return nil, &radioerr.Corrupted{Msg: "invalid metadata JSON: " + err.Error()}
	}

	var body []byte
	if !encrypted {
		body = data[cursor:]
	} else {
		if password == "" {
			return nil, &radioerr.MissingPassword{}
		}
		if cursor+saltLen+nonceLen > len(data) {
			return nil, &radioerr.Corrupted{Msg: "truncated salt/nonce"}
		}
		salt := data[cursor : cursor+saltLen]
		cursor += saltLen
		nonce := data[cursor : cursor+nonceLen]
		cursor += nonceLen
		sealed := data[cursor:]

		gcm, err := newGCM(password, salt)
		if err != nil {
			return nil, err
		}
		plain, err := gcm.Open(nil, nonce, sealed, header)
		if err != nil {
			return nil, &radioerr.BadPassword{}
		}
		body = plain
	}

	modelID, raw, err := decodeBody(body)
	if err != nil {
		return nil, err
	}

	model, ok := radio.Lookup(modelID)
	if !ok {
		return nil, fmt.Errorf("container: unknown radio model %q", modelID)
	}
	cp, err := codeplug.New(model, raw, meta)
	if err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}
	return cp, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("container: aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("container: gcm: %w", err)
	}
	return gcm, nil
}

func encodeBody(modelID string, raw []byte) []byte {
	idBytes := []byte(modelID)
	out := make([]byte, 0, 2+len(idBytes)+4+len(raw))
	out = appendU16LE(out, uint16(len(idBytes)))
	out = append(out, idBytes...)
	out = appendU32LE(out, uint32(len(raw)))
	out = append(out, raw...)
	return out
}

func decodeBody(body []byte) (string, []byte, error) {
	if len(body) < 2 {
		return "", nil, &radioerr.Corrupted{Msg: "truncated model id length"}
	}
	idLen := int(binary.LittleEndian.Uint16(body[0:2]))
	cursor := 2
	if cursor+idLen > len(body) {
		return "", nil, &radioerr.Corrupted{Msg: "truncated model id"}
	}
	modelID := string(body[cursor : cursor+idLen])
	cursor += idLen

	if cursor+4 > len(body) {
		return "", nil, &radioerr.Corrupted{Msg: "truncated raw length"}
	}
	rawLen := int(binary.LittleEndian.Uint32(body[cursor : cursor+4]))
	cursor += 4
	if cursor+rawLen > len(body) {
		return "", nil, &radioerr.Corrupted{Msg: "truncated raw body"}
	}
	raw := make([]byte, rawLen)
	copy(raw, body[cursor:cursor+rawLen])
	return modelID, raw, nil
}

func appendU16LE(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}

func appendU32LE(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

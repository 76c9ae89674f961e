package account

import (
	"bytes"
	"encoding/base64"
	"hash/fnv"
	"image/color"

	"github.com/disintegration/imaging"
)

const avatarSize = 96

// DefaultAvatar renders a flat JPEG whose colour is derived from the
// username, as a data URI.
func DefaultAvatar(username string) (string, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	sum := h.Sum32()
	bg := color.NRGBA{R: uint8(sum >> 16), G: uint8(sum >> 8), B: uint8(sum), A: 255}

	img := imaging.New(avatarSize, avatarSize, bg)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

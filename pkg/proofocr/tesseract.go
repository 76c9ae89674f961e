package proofocr

import "github.com/otiai10/gosseract/v2"

func tesseract(img []byte, whitelist string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage("eng"); err != nil {
		return "", err
	}
	if err := client.SetWhitelist(whitelist); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return "", err
	}
	return client.Text()
}

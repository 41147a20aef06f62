package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/sentriwatch/sentriwatch/tool"
)

const (
	defaultQRSize = 200
	maxQRSize     = 512
)

// GenerateQRCode returns a PNG QR code for opening the dashboard on a phone.
// GET ?size=200x200&data=<url-encoded-content>; data defaults to this
// dashboard's own URL as seen by the requesting client.
func GenerateQRCode(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		data = scheme + "://" + c.Request.Host + "/"
	}

	size := parseSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode QR code: "+err.Error()))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// parseSize parses size from "200x200" or "200" and returns the pixel dimension.
func parseSize(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if x := strings.IndexByte(s, 'x'); x > 0 {
		s = s[:x]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

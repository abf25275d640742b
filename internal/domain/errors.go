package domain

import "errors"

var ErrNoMimeType = errors.New("filename has no extension to derive a mime type from")

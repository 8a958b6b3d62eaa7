package internal

import "errors"

var ErrInvalidURL = errors.New("invalid url")
var ErrAliasTaken = errors.New("alias already taken")
var ErrLinkNotFound = errors.New("link not found")
var ErrSuggestFailed = errors.New("alias suggestion failed")

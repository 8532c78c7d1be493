package nes

import (
	"errors"
	"os"
)

func cbreakMode(*os.File) (func(), error) {
	return nil, errors.New("walk is not supported on windows")
}

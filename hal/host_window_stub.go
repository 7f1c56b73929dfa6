//go:build !cgo

package hal

import "errors"

// RunWindow needs a display backend; without cgo only headless mode works.
func RunWindow(newApp func(HAL) func() error) error {
	return errors.New("hal: windowed mode requires cgo; use headless")
}

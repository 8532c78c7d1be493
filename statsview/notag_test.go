//go:build !statsview

package statsview

const tagged = false

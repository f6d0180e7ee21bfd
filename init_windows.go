//go:build windows

package main

import "golang.org/x/sys/windows"

const utf8CodePage = 65001

// the headless commands print UTF-8 session titles
func init() {
	_ = windows.SetConsoleOutputCP(utf8CodePage)
}

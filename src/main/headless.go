package main

import (
	"errors"

	"copypolish/src/hotkey"
)

var errHeadless = errors.New("not available in this command")

type noClipboard struct{}

func (noClipboard) Read() (string, error) { return "", errHeadless }
func (noClipboard) Write(string) error    { return errHeadless }

type noKeys struct{}

func (noKeys) Copy() error  { return errHeadless }
func (noKeys) Paste() error { return errHeadless }

type noRegistrar struct{}

func (noRegistrar) Register(hotkey.Combo, func()) (hotkey.Handle, error) { return nil, errHeadless }

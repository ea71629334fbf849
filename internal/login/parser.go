// Package login parses the pipe/newline-delimited login blob carried in
// the body of the first (headerless) POST request.
package login

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Data is a fully parsed login blob (§4.3).
type Data struct {
	Username       string
	PasswordMD5    string
	ClientVersion  string
	UTCOffset      int
	ShowCity       int
	PathMD5        string
	AdaptersString string
	AdaptersMD5    string
	UninstallMD5   string
	DiskSignature  string
	AllowPMs       int
}

// ErrMalformed wraps the reason a login blob failed to parse. Callers
// should surface this as an External error (§4.3, §7).
type ErrMalformed struct {
	Reason string
}

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("malformed login packet: %s", e.Reason)
}

func malformed(reason string) error {
	return &ErrMalformed{Reason: reason}
}

// Parse decodes body per the grammar:
//
//	<username> '\n'
//	<password_md5> '\n'
//	<client_version> '|' <utc_offset> '|' <show_city> '|' <hashes> '|' <allow_pms> '\n'
//
// where <hashes> is path_md5:adapters_string:adapters_md5:uninstall_md5:disk_signature_md5.
func Parse(body []byte) (Data, error) {
	if !utf8.Valid(body) {
		return Data{}, malformed("body is not valid UTF-8")
	}
	text := string(body)
	lines := strings.SplitN(text, "\n", 3)
	if len(lines) < 3 {
		return Data{}, malformed("expected three newline-delimited fields")
	}

	username := lines[0]
	passwordMD5 := lines[1]
	if username == "" {
		return Data{}, malformed("username is empty")
	}

	fields := strings.Split(lines[2], "|")
	if len(fields) < 5 {
		return Data{}, malformed("third line must have five pipe-delimited fields")
	}

	clientVersion := fields[0]

	utcOffset, err := strconv.Atoi(fields[1])
	if err != nil {
		return Data{}, malformed("utc offset is not a decimal integer")
	}

	showCity, err := strconv.Atoi(fields[2])
	if err != nil {
		return Data{}, malformed("show city flag is not a decimal integer")
	}

	hashes := strings.Split(fields[3], ":")
	if len(hashes) != 5 {
		return Data{}, malformed("hash field must have five colon-delimited parts")
	}

	allowPMsField := strings.TrimRight(fields[4], "\n")
	allowPMs, err := strconv.Atoi(allowPMsField)
	if err != nil {
		return Data{}, malformed("allow pms flag is not a decimal integer")
	}

	return Data{
		Username:       username,
		PasswordMD5:    passwordMD5,
		ClientVersion:  clientVersion,
		UTCOffset:      utcOffset,
		ShowCity:       showCity,
		PathMD5:        hashes[0],
		AdaptersString: hashes[1],
		AdaptersMD5:    hashes[2],
		UninstallMD5:   hashes[3],
		DiskSignature:  hashes[4],
		AllowPMs:       allowPMs,
	}, nil
}

// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package sprig exposes the subset of the sprig template functions that always
// produce the same output for the same input.
package sprig

import (
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// functions whose result depends on the clock, randomness, the network or the environment
var nondeterministic = []string{
	"now", "date", "dateInZone", "date_in_zone", "dateModify", "date_modify",
	"mustDateModify", "must_date_modify", "ago", "duration", "durationRound",
	"unixEpoch", "htmlDate", "htmlDateInZone", "toDate", "mustToDate",
	"randAlphaNum", "randAlpha", "randAscii", "randNumeric", "randBytes", "randInt",
	"uuidv4", "shuffle", "bcrypt", "htpasswd", "derivePassword",
	"genPrivateKey", "genCA", "genCAWithKey", "genSelfSignedCert", "genSelfSignedCertWithKey",
	"genSignedCert", "genSignedCertWithKey", "encryptAES", "decryptAES",
	"env", "expandenv", "getHostByName",
}

// TxtFuncMap returns the deterministic sprig functions for use with text/template
func TxtFuncMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	for _, name := range nondeterministic {
		delete(funcs, name)
	}

	return funcs
}

// elCorrect: quality-aware correction of sequencing reads.
// Copyright (c) 2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elcorrect/blob/master/LICENSE.txt>.

package main

import (
	"strings"
	"testing"

	"github.com/exascience/elcorrect/cmd"
)

func TestHelpMessagesEndInNewline(t *testing.T) {
	for _, help := range []string{cmd.HelpMessage, cmd.CorrectHelp, cmd.ConsensusHelp, cmd.DistanceHelp} {
		if !strings.HasSuffix(help, "\n") || strings.HasSuffix(help, "\n\n") {
			t.Errorf("help message %q must end in exactly one newline", help)
		}
	}
}

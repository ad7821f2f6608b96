// Copyright (C) 2024 kushdb authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package runtime

import (
	"testing"
	"time"
)

func TestExtractYear(t *testing.T) {
	cases := []struct {
		t    time.Time
		want int32
	}{
		{time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), 2024},
		{time.Date(1999, time.December, 31, 23, 59, 59, 0, time.UTC), 1999},
		{time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC), 2000},
	}
	for _, c := range cases {
		got := ExtractYear(c.t.UnixMilli())
		if got != c.want {
			t.Errorf("ExtractYear(%v) = %d, want %d", c.t, got, c.want)
		}
	}
}

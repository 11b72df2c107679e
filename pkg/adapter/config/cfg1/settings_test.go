// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1_test

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/momeni/clean-parking/pkg/adapter/config/cfg1"
	"github.com/momeni/clean-parking/pkg/adapter/config/settings"
	"github.com/momeni/clean-parking/pkg/core/model"
)

func ExampleSerializable() {
	s := &cfg1.Serializable{
		Version: model.SemVer{1, 4, 5},
	}
	q := settings.Duration(30 * time.Minute)
	penalty := int64(1500)
	s.Settings.Visible.Pricing.Quarter = &q
	s.Settings.Visible.Pricing.BasePenaltyCents = &penalty
	b, err := json.Marshal(s)
	fmt.Println(err)
	fmt.Println(string(b))
	// Output:
	// <nil>
	// {"version":"1.4.5","pricing":{"quarter":"30m","base_penalty_cents":1500},"reservations":{"min_duration":null,"max_duration":null}}
}

func ExampleSerializable_nilDuration() {
	s := &cfg1.Serializable{
		Version: model.SemVer{4, 1, 5},
	}
	b, err := json.Marshal(s)
	fmt.Println(err)
	fmt.Println(string(b))
	// Output:
	// <nil>
	// {"version":"4.1.5","pricing":{"quarter":null,"base_penalty_cents":null},"reservations":{"min_duration":null,"max_duration":null}}
}

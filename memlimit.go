// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package main

import (
	"math"
	"os"
	"strconv"
)

var memLimit int64 = calcMemLimit(os.Getenv("MEMTAR_GB"))

func calcMemLimit(e string) int64 {
	if e != "" {
		f, err := parseGB(e)
		if err != nil {
			panic("malformed MEMTAR_GB environment variable, should be a number of gigabytes: " + e)
		}
		return f
	}
	return 1024 * 1024 * 1024 // fall back on 1GiB
}

func parseGB(e string) (int64, error) {
	f, err := strconv.ParseFloat(e, 64)
	if err != nil {
		return 0, err
	}
	return gigabytes(f)
}

func gigabytes(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= 1<<33 {
		return 0, strconv.ErrRange
	}
	return int64(f * 1024 * 1024 * 1024), nil
}

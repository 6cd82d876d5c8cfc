package executor

import (
	"strconv"
	"time"
)

func nowUTC() time.Time { return time.Now().UTC() }

func itoa(i int) string { return strconv.Itoa(i) }

package sourcecache

import "errors"

var errFakeNetwork = errors.New("fake network failure")

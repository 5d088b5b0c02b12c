package classfile

import "errors"

var errTruncated = errors.New("classfile: unexpected end of data")

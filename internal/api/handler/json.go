package handler

import jsoniter "github.com/json-iterator/go"

// json is a drop-in replacement for encoding/json on the hot response path.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

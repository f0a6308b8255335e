// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package api

import (
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// snakeCodec is a JSON-RPC 2.0 codec accepting method names of the
// form module_methodName, which it maps to the module.MethodName
// form of the gorilla RPC server.
type snakeCodec struct {
	codec *json2.Codec
}

func newSnakeCodec() *snakeCodec {
	return &snakeCodec{codec: json2.NewCodec()}
}

// NewRequest implements rpc.Codec.
func (c *snakeCodec) NewRequest(r *http.Request) rpc.CodecRequest {
	return &snakeCodecRequest{CodecRequest: c.codec.NewRequest(r)}
}

type snakeCodecRequest struct {
	rpc.CodecRequest
}

// Method implements rpc.CodecRequest.
func (r *snakeCodecRequest) Method() (method string, err error) {
	method, err = r.CodecRequest.Method()
	if err != nil {
		return "", err
	}
	return serviceMethod(method)
}

func serviceMethod(method string) (serviceMethod string, err error) {
	parts := strings.Split(method, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid rpc method format %s, should be 'module_methodName'", method)
	}

	service, funcName := parts[0], parts[1]
	first, size := utf8.DecodeRuneInString(funcName)
	funcName = string(unicode.ToUpper(first)) + funcName[size:]
	return service + "." + funcName, nil
}

package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code classifies an error for the transports. The values mirror the gRPC
// canonical codes that the sheet server actually produces.
type Code string

const (
	CodeOK                 Code = "OK"
	CodeCanceled           Code = "CANCELED"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeDeadlineExceeded   Code = "DEADLINE_EXCEEDED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeOutOfRange         Code = "OUT_OF_RANGE"
	CodeInternal           Code = "INTERNAL"
	CodeUnavailable        Code = "UNAVAILABLE"
)

type transport struct {
	grpc codes.Code
	http int
}

// transports is the single source for both status mappings. Codes missing
// here answer as CodeInternal.
var transports = map[Code]transport{
	CodeOK:                 {codes.OK, http.StatusOK},
	CodeCanceled:           {codes.Canceled, http.StatusRequestTimeout},
	CodeInvalidArgument:    {codes.InvalidArgument, http.StatusBadRequest},
	CodeDeadlineExceeded:   {codes.DeadlineExceeded, http.StatusGatewayTimeout},
	CodeNotFound:           {codes.NotFound, http.StatusNotFound},
	CodeFailedPrecondition: {codes.FailedPrecondition, http.StatusConflict},
	CodeOutOfRange:         {codes.OutOfRange, http.StatusBadRequest},
	CodeInternal:           {codes.Internal, http.StatusInternalServerError},
	CodeUnavailable:        {codes.Unavailable, http.StatusServiceUnavailable},
}

var fromGRPC = func() map[codes.Code]Code {
	m := make(map[codes.Code]Code, len(transports))
	for code, t := range transports {
		m[t.grpc] = code
	}
	return m
}()

func (c Code) String() string {
	return string(c)
}

func (c Code) transport() transport {
	if t, ok := transports[c]; ok {
		return t
	}
	return transports[CodeInternal]
}

// HTTPStatus is the status the web handlers answer with.
func (c Code) HTTPStatus() int {
	return c.transport().http
}

// GRPCCode is the status code the gRPC handlers answer with.
func (c Code) GRPCCode() codes.Code {
	return c.transport().grpc
}

// codeFromGRPC maps a status code back, folding anything unknown into
// CodeInternal.
func codeFromGRPC(c codes.Code) Code {
	if code, ok := fromGRPC[c]; ok {
		return code
	}
	return CodeInternal
}

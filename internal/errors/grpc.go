package errors

import (
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// errorDomain tags the ErrorInfo detail that carries Meta over the wire.
const errorDomain = "rpg-sheets"

// ToGRPCError turns err into a status error. Errors that already carry a
// status pass through untouched; metadata rides along as an ErrorInfo
// detail with every value stringified.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	e, ok := find(err)
	if !ok {
		e = Internal(err.Error())
	}

	st := status.New(e.Code.GRPCCode(), e.Message)
	if len(e.Meta) == 0 {
		return st.Err()
	}

	info := &errdetails.ErrorInfo{
		Reason:   e.Code.String(),
		Domain:   errorDomain,
		Metadata: make(map[string]string, len(e.Meta)),
	}
	for k, v := range e.Meta {
		info.Metadata[k] = fmt.Sprint(v)
	}
	if detailed, detailErr := st.WithDetails(info); detailErr == nil {
		st = detailed
	}
	return st.Err()
}

// FromGRPCError is the client-side inverse of ToGRPCError. Non-status errors
// are returned as is.
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	e := New(codeFromGRPC(st.Code()), st.Message())
	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != errorDomain {
			continue
		}
		for k, v := range info.GetMetadata() {
			e.WithMeta(k, v)
		}
	}
	return e
}

// Package errors is the error vocabulary shared by every layer of the sheet
// server.
//
// An *Error pairs a Code with a message a player can read. Handlers decide
// the wire status from the code alone: Code.HTTPStatus for the pages,
// ToGRPCError for the dice service.
//
//	err := errors.NotFoundf("character %s not found", id).WithMeta("character_id", id)
//	return errors.Wrap(err, "failed to get sheet")
//
// Wrap keeps the nearest code in the chain, so a roster NotFound is still a
// 404 by the time it reaches the web handler. Errors from outside the package
// count as CodeInternal.
package errors

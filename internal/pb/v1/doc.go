// Package v1 declares the NativeScheduler gRPC service.
//
// Messages are protobuf well-known types: an alarm travels as a
// google.protobuf.Struct, an alarm list as a google.protobuf.ListValue and an
// id as a google.protobuf.StringValue. The helpers here convert between those
// messages and domain alarms and are shared by the transport and the state
// file.
package v1

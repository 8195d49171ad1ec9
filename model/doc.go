// Package model defines the boundary to the reasoning engine that decides,
// per turn, whether to answer directly or to request tool invocations. The
// engine is consumed as an opaque oracle: implementations translate between
// agentchat's Message/ToolCall shapes and whatever their provider requires.
//
// Provider adapters live in subpackages (model/openai, model/anthropic); a
// scripted MockModel for tests and examples lives here.
package model

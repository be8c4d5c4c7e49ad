//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package openai

import (
	openaiopt "github.com/openai/openai-go/option"
)

const defaultChannelBufferSize = 256

// options holds the configuration for the OpenAI model.
type options struct {
	apiKey            string
	baseURL           string
	channelBufferSize int
	temperature       *float64
	extraOptions      []openaiopt.RequestOption
}

// Option configures the OpenAI model.
type Option func(*options)

// WithAPIKey sets the API key. When empty, the OPENAI_API_KEY environment
// variable is used by the underlying client.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithBaseURL sets a custom base URL, e.g. for OpenAI-compatible providers.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithChannelBufferSize sets the buffer size of the response channel
// returned by GenerateContent (default 256).
func WithChannelBufferSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.channelBufferSize = size
		}
	}
}

// WithDefaultTemperature sets the temperature applied when the request does
// not specify one.
func WithDefaultTemperature(temperature float64) Option {
	return func(o *options) {
		o.temperature = &temperature
	}
}

// WithOpenAIOptions passes additional request options to the underlying
// OpenAI client.
func WithOpenAIOptions(opts ...openaiopt.RequestOption) Option {
	return func(o *options) {
		o.extraOptions = append(o.extraOptions, opts...)
	}
}

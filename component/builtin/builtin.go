//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

// Package builtin registers the builtin components with the default
// registry. Import it for side effects:
//
//	_ "github.com/weavegraph/weavegraph/component/builtin"
package builtin

import (
	"github.com/weavegraph/weavegraph/component"
	"github.com/weavegraph/weavegraph/component/react"
	"github.com/weavegraph/weavegraph/component/research"
)

func init() {
	component.DefaultRegistry.MustRegister(react.New())
	component.DefaultRegistry.MustRegister(research.NewClarify())
	component.DefaultRegistry.MustRegister(research.NewBrief())
	component.DefaultRegistry.MustRegister(research.NewSupervisor())
	component.DefaultRegistry.MustRegister(research.NewFinalReport())
}

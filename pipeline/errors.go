package pipeline

import "github.com/corestream/streamcore/common/errs"

var (
	ErrUnsupportedFamily = errs.New(errs.CodeUnsupportedCapability, "pipeline: codec family unsupported by this pipe")
	ErrNotConfigured     = errs.New(errs.CodeConfigurationFailure, "pipeline: submission before setup completed")
)

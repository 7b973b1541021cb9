package music

import "fmt"

var (
	ErrInvalidNote         = fmt.Errorf("invalid note")
	ErrInvalidInterval     = fmt.Errorf("invalid interval")
	ErrInvalidScaleType    = fmt.Errorf("invalid scale type")
	ErrScaleNotImplemented = fmt.Errorf("scale not implemented")
)

package conf

import (
	"time"

	"github.com/zeptools/invoicing-core/throttle"
)

// InvoiceRenderBucketConf bounds render actions per client IP, separately
// from plain CRUD traffic.
var InvoiceRenderBucketConf = throttle.BucketConf{
	Burst:     10,
	Increment: 10,
	Period:    time.Minute,
}

package settings_test

import (
	"fmt"

	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/settings"
)

func ExampleDecode() {
	p, err := settings.Decode([]byte(`{"version":1,"paper_size":"11x14","min_border":0.75}`))
	if err != nil {
		panic(err)
	}
	fmt.Println(p.PaperSize, p.AspectRatio, p.MinBorder, p.ShowBlades)

	_, err = settings.Decode([]byte(`{"version":3}`))
	fmt.Println(errors.GetCode(err))
	// Output:
	// 11x14 3:2 0.75 true
	// UNSUPPORTED_VERSION
}

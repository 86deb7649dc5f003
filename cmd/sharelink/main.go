// Command sharelink builds, inspects and prices catalog share links offline.
//
//	sharelink catalog 2vxsx-fae --type wholesale
//	sharelink product 2vxsx-fae 42 --all
//	sharelink parse 'https://sarees.example/#/public-catalog/2vxsx-fae/direct'
//	sharelink price --retail 12000 --wholesale 9500 --direct 11000 --type direct
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

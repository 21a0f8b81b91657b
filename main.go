// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/invowk/cmdengine/cmd/cmdengine"

func main() {
	cmd.Execute()
}

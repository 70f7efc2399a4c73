// Package util 杂项辅助：启动banner。
package util

import (
	"fmt"
	"strings"

	"github.com/common-nighthawk/go-figure"
)

// ANSI 颜色码
const (
	colorReset = "\x1b[0m"
	colorCyan  = "\x1b[1;36m"
	colorDim   = "\x1b[2m"
)

// PrintBanner 启动时打印 ASCII banner 与版本行（统一青色，宽度随字形）
func PrintBanner(name, version string) {
	fig := figure.NewFigure(name, "", true)
	lines := fig.Slicify()

	width := 0
	for _, line := range lines {
		if len(line) > width {
			width = len(line)
		}
		fmt.Println(colorCyan + line + colorReset)
	}
	fmt.Println(colorDim + strings.Repeat("-", width) + colorReset)
	fmt.Printf("%s %s\n\n", name, version)
}

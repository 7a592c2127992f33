// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strings"
)

// crossReference turns a relative document link into an xref macro.
// Same-directory path segments are stripped, configured path rewrites are
// applied, and the source extension is swapped through the extension map.
// When the target document declares its own title the label is omitted so
// the renderer substitutes that title; otherwise the original label is kept
// verbatim. Returns ok == false when the target extension is not mapped.
func crossReference(label, target string, ctx *Context) (string, bool) {
	path := target
	fragment := ""
	if idx := strings.IndexByte(path, '#'); idx >= 0 {
		path, fragment = path[:idx], path[idx:]
	}

	ext := strings.TrimPrefix(strings.ToLower(pathExt(path)), ".")
	mapped, ok := ctx.Config.ExtensionMap[ext]
	if !ok {
		return "", false
	}

	path = strings.TrimSuffix(path, pathExt(path))
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	for _, rule := range ctx.Config.PathNormalization {
		re, err := regexp.Compile(rule.Regex)
		if err != nil {
			ctx.Warn("invalid path normalization pattern %q: %v", rule.Regex, err)
			continue
		}
		path = re.ReplaceAllString(path, rule.Replacement)
	}

	if ctx.Titles != nil {
		hasTitle, err := ctx.Titles.HasTitle(path)
		if err != nil {
			ctx.Warn("title lookup for %q failed, keeping link label: %v", path, err)
		} else if hasTitle {
			label = ""
		}
	}

	return "xref:" + path + "." + mapped + fragment + "[" + label + "]", true
}

func pathExt(path string) string {
	if idx := strings.LastIndexByte(path, '.'); idx >= 0 && !strings.ContainsRune(path[idx:], '/') {
		return path[idx:]
	}
	return ""
}

package cache

import (
	"fmt"
	"strings"
	"testing"
)

func BenchmarkLRUGet(b *testing.B) {
	c := New(Options[string]{MaxSize: 10000})
	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("key%d", i), strings.Repeat("x", 100))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key999")
	}
}

func BenchmarkModulesParseHit(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&sb, "define i32 @f%d(i1 %%c) {\n  br i1 %%c, label %%a, label %%b\na:\n  ret i32 0\nb:\n  ret i32 1\n}\n", i)
	}
	text := sb.String()

	m := NewModules(1)
	m.Parse(text)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Parse(text)
	}
}

package framework

import "testing"

func TestShort(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"net8.0", "net8.0"},
		{"NET472", "net472"},
		{".NETCoreApp,Version=v8.0", "net8.0"},
		{".NETCoreApp,Version=v3.1", "netcoreapp3.1"},
		{".NETStandard,Version=v2.0", "netstandard2.0"},
		{".NETFramework,Version=v4.7.2", "net472"},
		{".NETFramework,Version=v4.8", "net48"},
		{".NETFramework4.5", "net45"},
		{".NETFramework4.0.0.0", "net40"},
		{".NETStandard2.0", "netstandard2.0"},
		{".NETCoreApp,Version=v8.0/win-x64", "net8.0/win-x64"},
		{".NETPortable,Version=v0.0,Profile=Profile259", ".netportable,version=v0.0,profile=profile259"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Short(tt.in); got != tt.want {
				t.Errorf("Short(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

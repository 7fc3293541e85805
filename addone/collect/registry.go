package collect

import (
	"sort"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]CollectPlugin{
		"default": &DefaultPlugin{},
	}
)

// Register 注册解析插件（平台名大小写不敏感）
func Register(name string, plugin CollectPlugin) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[normalize(name)] = plugin
}

// Get 获取指定平台的解析插件，未注册时回退到 default
func Get(name string) CollectPlugin {
	p, _ := Lookup(name)
	return p
}

// Lookup 与 Get 相同，额外返回平台是否已注册
func Lookup(name string) (CollectPlugin, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if p, ok := registry[normalize(name)]; ok {
		return p, true
	}
	return registry["default"], false
}

// Platforms 已注册的平台名（有序）
func Platforms() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

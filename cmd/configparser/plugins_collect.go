package main

// 引入解析平台插件，触发各平台的 init() 完成注册
import (
	_ "github.com/sshcollectorpro/configparser/addone/collect/platforms/cisco_ios"
)

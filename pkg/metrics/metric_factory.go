package metrics

// MetricFactory 指标工厂，用于统一创建并注册指标（counter/gauge/histogram）。
// 所有 New* 方法在创建的同时完成注册，重名注册直接 panic，暴露启动期的接线错误。
type MetricFactory struct {
	reg Registers
}

// NewMetricFactory 创建指标工厂
func NewMetricFactory(reg Registers) *MetricFactory {
	return &MetricFactory{reg: reg}
}

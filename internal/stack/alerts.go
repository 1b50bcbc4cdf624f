package stack

import (
	"github.com/mertsatargan/react-weather-cdk/intrinsics"
	"github.com/mertsatargan/react-weather-cdk/resources/cloudwatch"
	"github.com/mertsatargan/react-weather-cdk/resources/ecs"
	"github.com/mertsatargan/react-weather-cdk/resources/sns"
)

// AddNotificationChannel declares the alert topic with a single email
// subscriber. The subscription stays pending until the address confirms it.
func AddNotificationChannel(s *Stack, id string, spec NotificationSpec) Handle {
	topic := s.Add(id, sns.Topic{
		DisplayName: optional(spec.DisplayName),
	})
	s.Add(id+"EmailSubscription", sns.Subscription{
		Protocol: "email",
		Endpoint: spec.Email,
		TopicArn: topic.Ref(),
	})
	return topic
}

// AddAlarm declares a CloudWatch alarm on one of the service's AWS/ECS
// metrics. Breaches notify the topic, which the alarm references but does
// not own.
func AddAlarm(s *Stack, spec AlarmSpec, cluster Cluster, service Handle, topic *Handle) Handle {
	alarm := cloudwatch.Alarm{
		AlarmDescription: optional(spec.Description),
		Namespace:        "AWS/ECS",
		MetricName:       spec.MetricName,
		Dimensions: intrinsics.Any(
			cloudwatch.Alarm_Dimension{Name: "ClusterName", Value: cluster.Ref()},
			cloudwatch.Alarm_Dimension{Name: "ServiceName", Value: service.GetAtt(ecs.AttrName)},
		),
		Statistic:          spec.Statistic,
		Period:             int(spec.Period.Seconds()),
		EvaluationPeriods:  spec.EvaluationPeriods,
		DatapointsToAlarm:  spec.DatapointsToAlarm,
		Threshold:          spec.Threshold,
		ComparisonOperator: spec.Comparison,
	}
	if topic != nil {
		alarm.AlarmActions = intrinsics.Any(topic.Ref())
	}
	return s.Add(spec.Name, alarm)
}

package rules

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	awssecurity "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/security"
)

func TestELBHTTPSOnly(t *testing.T) {
	key := awssecurity.DescribeLoadBalancers.Key("us-east-1")
	lb := func(name string, typ elbv2types.LoadBalancerTypeEnum) elbv2types.LoadBalancer {
		return elbv2types.LoadBalancer{LoadBalancerArn: aws.String("arn:" + name), LoadBalancerName: aws.String(name), Type: typ}
	}
	redirect := elbv2types.Action{
		Type:           elbv2types.ActionTypeEnumRedirect,
		RedirectConfig: &elbv2types.RedirectActionConfig{Protocol: aws.String("HTTPS"), Port: aws.String("443")},
	}
	forward := elbv2types.Action{Type: elbv2types.ActionTypeEnumForward}

	findings := newFixture(t).
		data(key, []elbv2types.LoadBalancer{
			lb("secure", elbv2types.LoadBalancerTypeEnumApplication),
			lb("plain", elbv2types.LoadBalancerTypeEnumApplication),
			lb("tcp", elbv2types.LoadBalancerTypeEnumNetwork),
		}).
		data(key.Child(awssecurity.DescribeListeners, "arn:secure"), []elbv2types.Listener{
			{Protocol: elbv2types.ProtocolEnumHttps, Port: aws.Int32(443), DefaultActions: []elbv2types.Action{forward}},
			{Protocol: elbv2types.ProtocolEnumHttp, Port: aws.Int32(80), DefaultActions: []elbv2types.Action{redirect}},
		}).
		data(key.Child(awssecurity.DescribeListeners, "arn:plain"), []elbv2types.Listener{
			{Protocol: elbv2types.ProtocolEnumHttp, Port: aws.Int32(8080), DefaultActions: []elbv2types.Action{forward}},
		}).
		eval(ELBHTTPSOnlyRule{}, nil)

	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %+v", findings)
	}
	if findings[0].Status != models.StatusOK || findings[0].Resource != "arn:secure" {
		t.Errorf("first finding = %+v", findings[0])
	}
	if findings[1].Status != models.StatusFail || findings[1].Message != "Load balancer plain accepts unencrypted connections on HTTP:8080" {
		t.Errorf("second finding = %+v", findings[1])
	}
}

package kubeletconfig

// kubeletConfigTemplate is the fixed standalone-mode kubelet configuration.
// Anonymous auth and AlwaysAllow are deliberate: there is no control plane
// to authenticate against in standalone mode. Substitutions: cluster
// domain, cluster DNS, runtime endpoint, static pod path.
const kubeletConfigTemplate = `kind: KubeletConfiguration
apiVersion: kubelet.config.k8s.io/v1beta1
authentication:
  anonymous:
    enabled: true
  webhook:
    enabled: false
authorization:
  mode: AlwaysAllow
clusterDomain: %s
clusterDNS:
  - %s
failSwapOn: false
containerRuntimeEndpoint: %s
staticPodPath: %s
cgroupDriver: systemd
`
